package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические (выражение внутри {{ }})
	LexInfo                       Code = 1000
	LexLeadingUnderscore          Code = 1001
	LexIncompleteString           Code = 1002
	LexIncompleteTranslatedString Code = 1003
	LexMissingTranslatedString    Code = 1004
	LexInvalidRemainder           Code = 1005

	// Парсерные
	SynInfo               Code = 2000
	SynEmptyVariable      Code = 2001
	SynMissingArgument    Code = 2002
	SynUnexpectedArgument Code = 2003
	SynInvalidNumber      Code = 2004
	SynUnsupportedTag     Code = 2005

	// Проверки поверх AST
	SemaInfo          Code = 3000
	SemaUnknownFilter Code = 3001

	// Ввод-вывод
	IOInfo       Code = 4000
	IOLoadFailed Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:                   "Unknown error",
	LexInfo:                       "Lexical information",
	LexLeadingUnderscore:          "Variables and attributes may not begin with underscores",
	LexIncompleteString:           "Expected a complete string literal",
	LexIncompleteTranslatedString: "Expected a complete translation string",
	LexMissingTranslatedString:    "Expected a string literal within translation",
	LexInvalidRemainder:           "Could not parse the remainder",
	SynInfo:                       "Syntax information",
	SynEmptyVariable:              "Empty variable tag",
	SynMissingArgument:            "Expected an argument",
	SynUnexpectedArgument:         "Unexpected argument",
	SynInvalidNumber:              "Invalid numeric literal",
	SynUnsupportedTag:             "Block tags are not supported",
	SemaInfo:                      "Semantic information",
	SemaUnknownFilter:             "Unknown filter",
	IOInfo:                        "I/O information",
	IOLoadFailed:                  "Failed to load template",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
