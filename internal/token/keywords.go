package token

var keywords = map[string]Kind{}

func init() {
	for k := KwClass; k <= KwNull; k++ {
		keywords[kindNames[k]] = k
	}
}

// LookupKeyword reports whether ident is a reserved word.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
