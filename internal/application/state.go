package application

import (
	"fmt"
	"slices"
)

// State is the lifecycle position of one application.
type State int

const (
	StateEmpty State = iota
	StateResumeUploaded
	StateScreening
	StateSelected
	StateRejected
	StateInterviewScheduled
	StateInterviewSchedulingFailed
)

var stateNames = map[State]string{
	StateEmpty:                     "empty",
	StateResumeUploaded:            "resume_uploaded",
	StateScreening:                 "screening",
	StateSelected:                  "selected",
	StateRejected:                  "rejected",
	StateInterviewScheduled:        "interview_scheduled",
	StateInterviewSchedulingFailed: "interview_scheduling_failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no screening transition leaves the state. Only
// reset and, for the interview states, a repeated proceed apply.
func (s State) Terminal() bool {
	switch s {
	case StateRejected, StateInterviewScheduled, StateInterviewSchedulingFailed:
		return true
	default:
		return false
	}
}

type trigger string

const (
	triggerSelectRole       trigger = "select role"
	triggerUploadResume     trigger = "upload resume"
	triggerRequestScreening trigger = "request screening"
	triggerScreeningResult  trigger = "complete screening"
	triggerProceed          trigger = "proceed"
)

// allowedFrom lists the states each trigger may fire from. Reset is valid
// everywhere and is not listed.
var allowedFrom = map[trigger][]State{
	triggerSelectRole:       {StateEmpty},
	triggerUploadResume:     {StateEmpty, StateResumeUploaded},
	triggerRequestScreening: {StateResumeUploaded, StateScreening},
	triggerScreeningResult:  {StateScreening},
	triggerProceed:          {StateSelected, StateInterviewScheduled, StateInterviewSchedulingFailed},
}

func canFire(t trigger, from State) bool {
	return slices.Contains(allowedFrom[t], from)
}
