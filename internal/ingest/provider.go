package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	WorkoutsReceived  int `json:"workouts_received"`
	WorkoutsInserted  int `json:"workouts_inserted"`
	WorkoutsRejected  int `json:"workouts_rejected"`
	ExercisesReceived int `json:"exercises_received"`
	SetsReceived      int `json:"sets_received"`
	SetsCompleted     int `json:"sets_completed"`

	RejectedNames []string `json:"rejected_names,omitempty"`
	Message       string   `json:"message,omitempty"`
}

// Add accumulates other into r.
func (r *Result) Add(other Result) {
	r.WorkoutsReceived += other.WorkoutsReceived
	r.WorkoutsInserted += other.WorkoutsInserted
	r.WorkoutsRejected += other.WorkoutsRejected
	r.ExercisesReceived += other.ExercisesReceived
	r.SetsReceived += other.SetsReceived
	r.SetsCompleted += other.SetsCompleted
	r.RejectedNames = append(r.RejectedNames, other.RejectedNames...)
}
