// Package audit defines the structured events emitted for every committed
// identity mutation. Events carry the old and new owner per affected name so
// a history view can be reconstructed elsewhere; this package only defines
// and logs them, it renders nothing.
package audit
