// Package fuzztests houses Go fuzz harnesses for the template front end
// (source -> lexer -> parser). They guard against panics and check the span
// invariants from internal/testkit on arbitrary inputs.
//
// Назначение: загружать байты в FileSet и прогонять их через лексер/парсер.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.

package fuzztests
