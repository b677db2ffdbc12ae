package forbidden

// Config tunes candidate retrieval, scoring and diversification.
type Config struct {
	// NeighborTopK is how many nearest vocabulary items each query retrieves.
	NeighborTopK int
	// OutK is the default forbidden-list size.
	OutK int
	// TauFloor drops candidates less similar to the target, antonyms excepted.
	TauFloor float64
	// TauAssoc admits generated phrases at least this similar to the target.
	TauAssoc float64

	MaxPhrasesPerSense int
	MaxPhraseWords     int

	MMRLambda float64
	// MMRPrefix bounds how many ranked candidates one selection step scans.
	MMRPrefix int

	WCos float64
	WSyn float64
	WAnt float64
	WLLM float64

	EnrichmentConcurrency int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		NeighborTopK:          200,
		OutK:                  16,
		TauFloor:              0.30,
		TauAssoc:              0.35,
		MaxPhrasesPerSense:    4,
		MaxPhraseWords:        3,
		MMRLambda:             0.7,
		MMRPrefix:             128,
		WCos:                  1.0,
		WSyn:                  0.6,
		WAnt:                  0.5,
		WLLM:                  0.2,
		EnrichmentConcurrency: 2,
	}
}
