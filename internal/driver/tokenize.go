package driver

import (
	"dtl/internal/lexer"
	"dtl/internal/source"
	"dtl/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
}

// Tokenize loads path and splits it into structural tokens.
// The structural lexer cannot fail; the only error is an I/O one.
func Tokenize(path string) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	logger.Debugf("tokenize %s (%d bytes)", path, file.Len())

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  lexer.New(file).All(),
	}, nil
}
