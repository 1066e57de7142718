// Package token defines the structural and expression token kinds of the template language.
// Invariants:
//   - Tokens never copy text: Span is an absolute half-open byte range into the
//     owning source.File, and the text is recovered with File.Text(Span).
//   - Span of Variable/Tag/Comment includes the two-byte delimiters on each side.
//   - Structural token spans partition the file: consecutive, no gaps, no overlaps.
//   - ExprToken spans are absolute too; Content excludes quotes and the `_( )` marker.
package token
