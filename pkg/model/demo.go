package model

// DemoInput returns a small catalogue of two courses taught by two teachers available all week
func DemoInput() RawInput {
	return RawInput{
		Teachers: []RawTeacher{
			{Id: "T1", Name: "Dr. Smith", DefaultAvailability: true},
			{Id: "T2", Name: "Prof. Johnson", DefaultAvailability: true},
		},
		Courses: []RawCourse{
			{Code: "CS101", Title: "Intro to Programming", CreditHours: 3, Teachers: []string{"T1", "T2"}},
			{Code: "MATH201", Title: "Calculus II", CreditHours: 4, Teachers: []string{"T1"}},
		},
		Sections: []RawSection{
			{Id: "A", Course: "CS101", Teacher: "T1"},
			{Id: "B", Course: "MATH201", Teacher: "T1"},
		},
	}
}

func LoadDemoData(scheduler Scheduler) error {
	return DemoInput().Populate(scheduler)
}
