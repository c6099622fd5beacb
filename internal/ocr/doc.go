// Package ocr extracts text from images.
//
// Tesseract is used through the gosseract cgo bindings, so libtesseract and
// the traineddata files for each language must be installed. TESSDATA_PREFIX
// or Tesseract.TessdataPrefix points at a non-standard tessdata directory.
package ocr
