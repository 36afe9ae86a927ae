// Package highlighters binds each document format to the highlighter that
// renders it.
//
// Subpackages hold the backends:
//   - palette allocates keyword colors for one request;
//   - match splits text into claimed and unclaimed segments;
//   - inline renders HTML snippets and plain-text pages;
//   - docx rewrites Word document runs;
//   - pdf appends highlight annotations to PDF files.
package highlighters
