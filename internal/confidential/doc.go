// Package confidential defines the boundary between the payroll ledger and
// the external Confidential Compute Service.
//
// Overview:
//   - Value is an opaque, fixed-width ciphertext handle. The ledger never
//     inspects it; all arithmetic on encrypted quantities goes through an
//     Engine.
//   - Engine is the call contract the compute service must satisfy:
//     encrypt, homomorphic add/sub, multiply-by-public-scalar (for time
//     based accrual, where elapsed time is public but the rate is not),
//     ciphertext comparison, and an authorization-gated decrypt used only
//     when value actually leaves the system.
//   - ServiceEngine is an in-process reference implementation used by tests
//     and local deployments. It models the handle-registry behaviour of the
//     real service: a handle is a PRF-derived identifier, the plaintext
//     lives only inside the service.
//
// Security model:
//   - Handles are derived with a MiMC PRF over a per-service key and a
//     monotonic counter, so they carry no information about the plaintext.
//   - DecryptForTransfer requires the authorization token the engine was
//     provisioned with; everything else operates on handles alone.
//
// WARNING: ServiceEngine holds plaintexts in process memory. It stands in
// for the external MPC/FHE service and must not be treated as one.
package confidential
