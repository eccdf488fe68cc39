// Package loader turns uploaded files into raw text documents.
//
// Dispatch is strictly on file extension from a fixed allow-set:
// .pdf, .docx, .txt, .csv and .xlsx. PDF, text and CSV files are read with
// the langchaingo document loaders; DOCX and XLSX are unpacked directly
// from their ZIP/XML containers. Per-format reader failures propagate as
// ErrLoad with the original cause attached; nothing is retried here.
package loader
