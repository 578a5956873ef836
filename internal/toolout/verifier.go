package toolout

import (
	"regexp"
	"strings"
)

// VerifierOutput is the judgment extracted from a certifying proof
// pipeline's output.
type VerifierOutput struct {
	// Verified is set by the pipeline's success marker.
	Verified bool `json:"verified"`

	// Satisfiability is inferred from the verified count (0 means
	// UNSATISFIABLE) or from a no-root-claim marker.
	Satisfiability string `json:"satisfiability,omitempty"`

	// NoRootClaim records the pipeline-specific marker that the proof has
	// no root claim. Both supported pipelines emit it only for
	// unsatisfiable instances, which is the sole reason it implies
	// UNSATISFIABLE here; it is not a general proof-semantics rule.
	NoRootClaim bool `json:"no_root_claim"`

	// VerifiedCount is the certified model count, verbatim.
	VerifiedCount string `json:"verified_count,omitempty"`
}

var verifiedCountPat = regexp.MustCompile(`^(?:root\s+)?[mM]odel count:\s*(\d+)`)

// verifierRules is the proof-pipeline grammar. Unlike the counter grammar,
// the field rules come first: the no-root-claim marker of one pipeline
// contains the substring "Error" and must not be classified as a failure.
var verifierRules = []rule[VerifierOutput]{
	{
		name: "verified-count",
		match: func(line string) []string {
			return verifiedCountPat.FindStringSubmatch(line)
		},
		apply: func(m []string, out *VerifierOutput) error {
			out.VerifiedCount = m[1]
			if m[1] == "0" {
				out.Satisfiability = "UNSATISFIABLE"
			} else {
				out.Satisfiability = "SATISFIABLE"
			}
			return nil
		},
	},
	{
		// nnf2trace/sharptrace pipeline success marker.
		name:  "proofs-verified",
		match: containsAll("proofs verified"),
		apply: setVerified,
	},
	{
		// cpog pipeline success marker.
		name:  "proof-successful",
		match: containsAll("PROOF SUCCESSFUL"),
		apply: setVerified,
	},
	{
		// sharptrace phrasing of the no-root-claim condition.
		name:  "no-root-claim-sharptrace",
		match: containsAll("IntegrityError(NoRootClaim)"),
		apply: setNoRootClaim,
	},
	{
		// cpog phrasing of the same condition.
		name:  "no-root-claim-cpog",
		match: containsAll("proof done but some clause is neither the asserted root nor a POG definition"),
		apply: setNoRootClaim,
	},
	{
		name:  "assertion-failure",
		match: containsAll("Assertion", "failed"),
		apply: failWith[VerifierOutput](ErrAssertion),
	},
	{
		name:  "memory-out",
		match: containsAll("ERROR Memory out!"),
		apply: failWith[VerifierOutput](ErrMemoryOut),
	},
	{
		// Verifier pipelines are shell scripts wrapping several tools, so
		// the generic match is case-insensitive, unlike the counter one.
		name: "generic-error",
		match: func(line string) []string {
			if strings.Contains(strings.ToLower(line), "error") {
				return []string{line}
			}
			return nil
		},
		apply: failWith[VerifierOutput](ErrGeneric),
	},
}

func setVerified(_ []string, out *VerifierOutput) error {
	out.Verified = true
	return nil
}

func setNoRootClaim(_ []string, out *VerifierOutput) error {
	out.NoRootClaim = true
	out.Satisfiability = "UNSATISFIABLE"
	return nil
}

// ParseVerifier scans proof-pipeline output. As with ParseCounter, a
// non-nil error is a *ToolError and the partial output is still returned.
func ParseVerifier(output string) (VerifierOutput, error) {
	var out VerifierOutput
	err := scan(output, verifierRules, &out)
	return out, err
}
