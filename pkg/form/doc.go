// Package form implements the generic form: a field schema, the values being
// edited, required-field validation and the submit/close lifecycle.
//
// A form starts closed. Open acquires an outside-interaction detector on the
// configured overlay bus; any event outside the form's element dismisses it
// without submitting. Submit validates, hands the aggregated values to the
// caller's handler and then closes unconditionally, returning the handler's
// error for the caller to report.
package form
