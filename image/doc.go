// Package image loads and saves program images: an instruction stream and
// the initial contents of data memory.
//
// Binary images are the raw big-endian bytes. Images with a .mem extension
// are text, one or more words per line, with ';' or '#' comments.
package image
