// Package control provides collective-pitch commands for the vehicle.
//
// Controllers implement [Controller] to compute a pitch command from the
// vehicle state (position, speed):
//
//   - [Schedule]: speed to pitch lookup, linearly interpolated
//   - [Fixed]: constant pitch
//   - [PID]: trims another controller to hold a target speed
//
// # Usage
//
//	sched, _ := control.NewSchedule(speeds, pitches)
//	pitch := sched.Compute(dynamo.State{x, v}, t)
package control
