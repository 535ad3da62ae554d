package query

import "golang.org/x/text/cases"

func equalFold(a, b string) bool {
	caser := cases.Fold()
	return caser.String(a) == caser.String(b)
}
