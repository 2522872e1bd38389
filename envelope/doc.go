/*
Package envelope writes paged and dated response envelopes.

An envelope wraps a payload with metadata that travels in headers instead of the body.
Page carries pagination counters and Dated carries an optional last-modified time. The
envelope writers never serialize the payload themselves: when a writer is specialized
for a concrete envelope type, such as page<widget>, it resolves the payload writer for
the element type from an encoding.WriterRegistry and delegates to it on every write.

Envelope writers only declare themselves writeable for application/json, even when the
payload writer could handle other mimetypes.

Specializing

	engine, _ := encoding.NewContentEngine(false)
	engine.RegisterType("widget")

	pages, err := envelope.RegisterPage[Widget](engine, encoding.ArgumentOf("widget"))

Specialization fails with a spanerrors.ConfigurationError when no payload writer is
registered, so missing registrations surface at startup rather than on a request.
*/
package envelope
