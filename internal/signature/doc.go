/*
Package signature implements CINCO request signing, Signature Version 1.

Every outbound request is authenticated with a shared-secret HMAC instead of a
session. The algorithm:

Step 1: take the current time once as an ISO-8601 UTC timestamp with
millisecond precision, such as `2024-01-01T00:00:00.000Z`.

Step 2: compute `hex(md5(BODY))`. An absent body digests as the empty string,
`d41d8cd98f00b204e9800998ecf8427e`.

Step 3: build the canonical string by joining five fields with `\n`, in this
order:

	<METHOD>\n<URI_PATH>\n<TIMESTAMP>\n<BODY_DIGEST>\n1

Order and delimiter are part of the wire contract; the server rebuilds the
same string to verify.

Step 4: compute `base64(hmacsha1(SECRET, CANONICAL_STRING))`.

Step 5: send the headers:

	Date: <TIMESTAMP>
	Signature-Version: 1
	Content-MD5: <BODY_DIGEST>
	Authorization: CINCO <KEY_ID>: <SIGNATURE>

The signature is valid only for the exact (method, path, timestamp, body
digest) tuple it was computed over.
*/
package signature
