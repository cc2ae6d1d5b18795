// Package language maps loosely written language tokens ("FRENCH", "fr",
// "French") onto the canonical identifiers each translation provider
// understands, and detects the language of free text for auto-detected
// source columns.
package language
