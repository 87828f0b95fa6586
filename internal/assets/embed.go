// Package assets bundles the document template and the fallback poster.
package assets

import _ "embed"

// Template is the DOCX film sheet. It holds ${field} placeholders, a ${poster}
// image slot and a ratings table anchored by its "Metascore" row.
//
//go:embed template.docx
var Template []byte

// FallbackPoster is used when a film has no usable poster URL.
//
//go:embed poster.png
var FallbackPoster []byte
