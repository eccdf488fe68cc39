// Package chunker splits loaded documents into bounded, overlapping chunks.
//
// Two strategies share the same size parameters (1000 characters, 100
// overlap): header-based splitting for markdown-like content, which records
// the #/##/### heading path of each chunk, and character-window splitting
// for everything else. Strategy selection is declared once per pipeline
// (auto, header or character); auto picks header splitting only for
// markdown extensions. A header-splitting failure is non-fatal and falls
// back to character splitting for that document.
package chunker
