// Package parser exposes the configuration of the markup parser. The parser
// itself lives in internal/parser and is constructed through the top-level
// formidable package to avoid import cycles.
//
// Recognised markup: <input> (every type registered in pkg/fields except the
// button-like submit, button, reset and image types), <textarea> and <select>
// with closed <option> children become fields. The opening <form> tag is
// followed by the post indicator. Everything else is kept verbatim.
package parser
