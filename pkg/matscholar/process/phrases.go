package process

// DefaultPhrasePasses is the number of merge passes used by the processor.
const DefaultPhrasePasses = 2

// NoPhrasePasses turns folding off in Config.PhrasePasses, where zero
// selects DefaultPhrasePasses.
const NoPhrasePasses = -1

// PhraseMerger joins known multi-word phrases into single tokens.
type PhraseMerger interface {
	Merge(tokens []string) []string
}

// FoldPhrases applies m to tokens passes times so that merged phrases can be
// merged again into longer ones. A non-positive passes leaves tokens as is.
func FoldPhrases(m PhraseMerger, tokens []string, passes int) []string {
	for ; passes > 0; passes-- {
		tokens = m.Merge(tokens)
	}
	return tokens
}
