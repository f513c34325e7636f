package tropic

import "fmt"

// Sentinel errors for Handle-level usage mistakes that never reach the
// device — distinct from errs.Error, which carries the device/transport
// taxonomy (spec.md §7).
var ErrNotInitialized = fmt.Errorf("tropic: handle not initialized, call Init first")
var ErrNoSecureSession = fmt.Errorf("tropic: no active secure session, call StartSecureSession first")
var ErrAlreadyInitialized = fmt.Errorf("tropic: handle already initialized")
var ErrCertStoreIncomplete = fmt.Errorf("tropic: certificate store entry not populated, call ReadCertStore first")
