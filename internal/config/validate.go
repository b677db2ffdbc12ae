package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	stemmers           = []string{"snowball", "porter2"}
	embeddingProviders = []string{"hash", "ollama", "genai"}
	llmProviders       = []string{"none", "ollama", "anthropic"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Vocabulary.validate(); err != nil {
		return fmt.Errorf("vocabulary: %w", err)
	}
	if err := c.Generator.validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}

	if err := oneOf("textnorm.stemmer", &c.TextNorm.Stemmer, stemmers); err != nil {
		return err
	}
	if err := oneOf("embedding.provider", &c.Embedding.Provider, embeddingProviders); err != nil {
		return err
	}
	if err := oneOf("llm.provider", &c.LLM.Provider, llmProviders); err != nil {
		return err
	}

	if c.Embedding.Provider == "genai" && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required for the genai provider")
	}
	if c.LLM.Provider == "anthropic" && (c.LLM.APIKey == "" || c.LLM.Model == "") {
		return fmt.Errorf("llm.api_key and llm.model are required for the anthropic provider")
	}
	if c.Validator.FuzzyThreshold <= 0 || c.Validator.FuzzyThreshold > 1 {
		return fmt.Errorf("validator.fuzzy_threshold must be in (0, 1] (got %v)", c.Validator.FuzzyThreshold)
	}
	if c.Cache.ForbiddenListSize < 0 {
		return fmt.Errorf("cache.forbidden_list_size must be >= 0 (got %d)", c.Cache.ForbiddenListSize)
	}

	return nil
}

func (v *VocabularyConfig) validate() error {
	if strings.TrimSpace(v.Path) == "" {
		return fmt.Errorf("path is required")
	}
	if v.MinLen < 1 {
		return fmt.Errorf("min_len must be >= 1 (got %d)", v.MinLen)
	}
	if v.MinLen > v.MaxLen {
		return fmt.Errorf("min_len %d exceeds max_len %d", v.MinLen, v.MaxLen)
	}
	if v.MinZipf > v.MaxZipf {
		return fmt.Errorf("min_zipf %v exceeds max_zipf %v", v.MinZipf, v.MaxZipf)
	}
	if v.TopN <= 0 {
		return fmt.Errorf("top_n must be > 0 (got %d)", v.TopN)
	}
	return nil
}

func (g *GeneratorConfig) validate() error {
	if g.MMRLambda < 0 || g.MMRLambda > 1 {
		return fmt.Errorf("mmr_lambda must be in [0, 1] (got %v)", g.MMRLambda)
	}
	if g.OutK < 0 {
		return fmt.Errorf("out_k must be >= 0 (got %d)", g.OutK)
	}
	if g.MMRPrefix < 1 {
		return fmt.Errorf("mmr_prefix must be >= 1 (got %d)", g.MMRPrefix)
	}
	if g.NeighborTopK < 1 {
		return fmt.Errorf("faiss_topk must be >= 1 (got %d)", g.NeighborTopK)
	}
	if g.MaxPhraseWords < 1 {
		return fmt.Errorf("max_llm_phrase_words must be >= 1 (got %d)", g.MaxPhraseWords)
	}
	return nil
}

// oneOf lowercases *value in place and checks it against allowed.
func oneOf(field string, value *string, allowed []string) error {
	*value = strings.ToLower(strings.TrimSpace(*value))
	if !slices.Contains(allowed, *value) {
		return fmt.Errorf("%s must be one of %s (got %q)", field, strings.Join(allowed, ", "), *value)
	}
	return nil
}
