// Package pendulum builds the pendulum graphs shipped with chg.
//
// Three models are provided:
//
//   - NewDriven: a double pendulum whose upper arm (A) is driven at a fixed
//     angular speed that reverses every half period, and whose lower arm (B)
//     swings on the accelerating end of A.
//   - NewFree: the free double pendulum with unequal masses, integrated
//     semi-implicitly.
//   - NewSimple: a single undamped pendulum.
//
// Angles are radians. The simple model measures theta from upright.
//
// Frames turns a solved history into bob coordinates for rendering.
package pendulum
