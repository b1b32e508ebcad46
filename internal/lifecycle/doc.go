// Package lifecycle sequences the create, list and delete flows of gcevm.
//
// Each flow is a straight line of gateway calls:
//   - Create: resolve the boot image, build the spec, submit the insert, wait
//   - List: list instances, filtered by name unless the reserved default name is used
//   - Delete: submit the delete, wait
//
// Error Handling:
//
// Errors from the request builder, the gateway and the poller are returned
// to the caller as they are, so errors.As against the types in
// internal/provider works at the top level. A create that fails after the
// insert was accepted is not rolled back; whatever the provider already
// created stays in place.
//
// Context Support:
//
// All operations accept a context.Context. It is passed to every gateway
// call and to the poller's sleep.
package lifecycle
