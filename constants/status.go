package constants

// Strategy names the terminal path an analysis run took.
type Strategy string

// Stable values (reported in results and stored in history rows).
const (
	StrategyDirect  Strategy = "DIRECT"  // whole text in one provider call
	StrategyChunked Strategy = "CHUNKED" // per-chunk calls joined by a merge call
	StrategyNative  Strategy = "NATIVE"  // raw document bytes handed to the provider
)

// CallType distinguishes provider call sites so retry behaviour can differ per site.
type CallType string

const (
	CallDirect CallType = "direct"
	CallChunk  CallType = "chunk"
	CallMerge  CallType = "merge"
	CallNative CallType = "native"
)
