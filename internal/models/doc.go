// Package models defines the core domain models for TodosPonen.
//
// # Models
//
//   - Circle: a rotating savings group (SANG) with a fixed contribution,
//     frequency and number of turns
//   - Membership: a user's seat in a circle, holding a full or half share of
//     one turn and the payment state for the current cycle
//   - User / Profile: account and the identity-provider view used to gate
//     admission (bank details, national ID) and deliver notifications
//
// # Design Principles
//
//  1. Lifecycle fields are closed string enums with a Valid method, checked at
//     the storage boundary
//  2. Shares are counted in halves (Share) so slot sums are exact integers
//  3. Relationships use ID strings instead of pointers
//  4. Timestamps are Unix seconds; civil dates (StartDate) are UTC midnight
package models
