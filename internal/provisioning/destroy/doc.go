// Package destroy tears a lab down from its local record.
//
// Deleting the resource group removes every resource-group-scoped object.
// Policy definitions, the policy initiative and the activity log diagnostic
// setting live at subscription scope and are deleted by name afterwards; a
// soft-deleted key vault is purged on request. Defender pricing is left
// alone because other workloads in the subscription may rely on it.
package destroy
