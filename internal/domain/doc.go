// Package domain contains the core entities of assetwatch: assets and
// their status lifecycle, custody assignments, notifications, the audit
// trail, and the ephemeral results of a network scan pass.
//
// The package has no dependencies on persistence or transport. Status
// transitions are enforced here so that every caller (reconciliation,
// assignment workflow, HTTP surface) shares one state machine.
package domain
