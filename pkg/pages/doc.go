// Package pages loads the declarative definition of each entity screen: the
// form fields, the list columns, the row actions and the sidebar entry.
// Definitions are YAML documents, either the bundled set or a directory
// supplied at runtime, and a Store can swap them atomically on reload.
package pages
