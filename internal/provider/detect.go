package provider

// Named globals consulted during injected-provider detection, in priority
// order: the primary provider, a named alternate, and the deprecated legacy
// global kept for old wallet builds.
const (
	GlobalEthereum     = "ethereum"
	GlobalBinanceChain = "BinanceChain"
	GlobalLegacyWeb3   = "web3"
)

// detectionOrder fixes the candidate priority. The first present handle wins
// regardless of the state of lower-priority candidates.
var detectionOrder = [...]string{GlobalEthereum, GlobalBinanceChain, GlobalLegacyWeb3}

// Environment maps known global names to optional injected handles. It is an
// explicit value rather than process-wide state, so detection is
// deterministic and testable without a real host environment.
//
// Detection is a point-in-time decision: once a Provider is constructed from
// a detected handle, later changes to the Environment are not observed
// unless the caller re-invokes Detect.
type Environment map[string]Injected

// Detect returns the highest-priority injected handle present in the
// environment. Presence is an existence check only; candidate health is
// never probed. The second return value is false when no candidate exists.
func (e Environment) Detect() (Injected, bool) {
	for _, name := range detectionOrder {
		if handle, ok := e[name]; ok && handle != nil {
			return handle, true
		}
	}

	return nil, false
}

// IsSupported reports whether any injected provider candidate is present.
// It is a pure existence predicate over the same candidate set as Detect and
// is safe to call on a nil or empty Environment.
func (e Environment) IsSupported() bool {
	_, ok := e.Detect()
	return ok
}
