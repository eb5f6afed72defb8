package detection

import "github.com/glaslos/ssdeep"

// FuzzyHasher computes and compares context-triggered piecewise hashes
type FuzzyHasher interface {
	// Hash returns the fuzzy hash of data
	Hash(data []byte) (string, error)

	// Compare returns a 0-100 similarity score, 100 meaning identical
	Compare(hashA, hashB string) (int, error)
}

func init() {
	// Login pages are often well under 4096 bytes; hash them anyway
	ssdeep.Force = true
}

// SSDeepHasher implements FuzzyHasher with ssdeep
type SSDeepHasher struct{}

func (SSDeepHasher) Hash(data []byte) (string, error) {
	return ssdeep.FuzzyBytes(data)
}

func (SSDeepHasher) Compare(hashA, hashB string) (int, error) {
	return ssdeep.Distance(hashA, hashB)
}
