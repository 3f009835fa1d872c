// Package pose owns the landmark data model consumed by serve analysis.
//
// Responsibilities: landmark indices (MediaPipe BlazePose order),
// handedness roles, the optional Value used for every gated feature, and
// JSON landmark recordings used for deterministic replay.
// Key types: Landmark, Frame, Roles, Value, Recording.
//
// Dependency rule: pose depends on nothing above fsutil. No feature math
// lives here.
package pose
