// Arbitrarily encode and decode of message body content.
/*
The encoding package holds a single interface contract for any given content
type, so that content can be decoded dynamically based on message headers or mimetype
sniffing, and so that the writer for a response payload can be looked up by the type
of the payload and the mimetype the client asked for.

Specific objectives

1. Clients can send arbitrary object serializations and request back whichever encoding
type they are most comfortable with.

2. Payload writers are resolved from a registry keyed by an explicit type tag
(see Argument), so decorating writers such as response envelopes never need to know
how their inner payload is serialized.

3. Content encoding and decoding support should be independent of service pattern.
Adding support for a mimetype to a SpanEngine upgrades every writer registered
through RegisterType.

4. Developers can extend the engine with their own encoders or register their own
BodyWriter for a given type tag.
*/
package encoding
