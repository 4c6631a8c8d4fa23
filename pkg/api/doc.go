// Package api is the data-access layer over the farm REST API. Every
// collection exposes the same list/get/create/update/delete surface through
// Resource; records travel as plain JSON objects.
package api
