// Package stub resolves and renders the parameterized templates used to
// scaffold modules. Templates are plain text files named <type>.stub; a named
// template set may override any of them under templates/<set>/<type>.stub.
// Lookups consult a user stubs directory first and fall back to the defaults
// embedded in the binary.
package stub
