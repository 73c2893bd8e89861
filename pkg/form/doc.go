// Package form holds the editable state of an admin record form.
//
// A Form binds values to the fields of an AdminConfig, coerces submitted
// strings according to the schema kind of each property and validates the
// result against the same schema before handing the payload to a submit
// callback. Controls and Groups expose a render-ready view that the HTML and
// terminal renderers consume.
package form
