/*
Package security provides the cryptographic primitives the master uses
to authenticate frameworks, agents, and operators over mTLS, and to
protect the cluster's root CA key at rest.

A CertAuthority issues short-lived node and client certificates signed
by a long-lived root CA (RSA 4096, 10-year validity); issued
certificates carry a 2048-bit key and a 90-day validity window, after
which CertNeedsRotation flags them for renewal. The root key itself is
never written to storage.Store in the clear: Encrypt/Decrypt wrap it in
AES-256-GCM under a key derived from the cluster ID via
DeriveKeyFromClusterID.

Principal extraction for HTTP authentication reads the verified client
certificate's CommonName off the connection's TLS state; callers doing
authorization decisions (e.g. reserve/create-volumes operator calls)
should treat that CommonName as the request's principal.
*/
package security
