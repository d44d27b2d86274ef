// Package gateway turns a (tenant, object key) pair into a delivery outcome.
//
// The Registry maps tenant names to object stores and their delivery mode.
// The Dispatcher looks the tenant up and either presigns a download URL after
// confirming the object exists (redirect mode) or fetches the object and hands
// its body back for streaming (proxy mode). Failures are reported as
// *interfaces.DeliveryError with one of three kinds: unknown tenant, missing
// object, or backend error.
package gateway
