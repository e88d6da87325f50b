// Package l2geometry owns Layer 2 (Geometry) of the pose data model.
//
// Responsibilities: turning a detector frame into a BodyPose by computing
// unsigned interior joint angles and limb displacement vectors.
// Key types: BodyPose, AngleID, Limb, Computer.
//
// Dependency rule: L2 may depend on L1 only.
// Missing keypoints never raise: the dependent angle or vector entry is
// simply left out of the map, so callers must treat absence as unknown.
package l2geometry
