// Package completion generates thread summaries through an OpenAI-compatible
// chat-completion endpoint.
//
// The package serializes an ordered email thread into a single prompt that
// asks for a leading tone classification line followed by a category-grouped
// bullet summary, then performs one synchronous completion call. Provider
// rejections surface as *Error values carrying the HTTP status and the
// provider's own message; an empty choice list degrades to a fixed fallback
// string instead of an error.
package completion
