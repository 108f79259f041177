// Package keygen generates the SSH key pair used for the AKS node linux
// profile.
//
// AKS only accepts RSA public keys in OpenSSH authorized_keys format. The
// private key is kept in the lab state directory so node access survives the
// CLI process.
package keygen
