// Package configure binds a kubeconfig to the new cluster and applies the
// lab manifests.
//
// Neither step can abort a run. A credential failure skips the manifests
// and leaves the follow-up command in State.Configure; each manifest that
// is missing or fails to apply is recorded on its own and the loop moves on.
package configure
