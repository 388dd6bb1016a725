package i18n

type NavText struct {
	Board    string
	Calendar string
	Events   string
	Activity string
}

type CommonText struct {
	Today    string
	Overdue  string
	AddTask  string
	AddEvent string
	Previous string
	Next     string
	Remote   string
	Empty    string
}

type CalendarText struct {
	Months       [12]string
	MonthsShort  [12]string
	Weekdays     [7]string // Sunday first
	MultiDay     string
	HappeningNow string
	Priority     string
}

type KanbanText struct {
	Todo       string
	InProgress string
	Done       string
	DropHere   string
}

type TeamText struct {
	Title      string
	TotalTasks string
	Completed  string
	Active     string
	Members    string
	Unassigned string
}

type PriorityText struct {
	Low    string
	Medium string
	High   string
}

// Dictionary is the full set of UI strings for one language.
type Dictionary struct {
	Lang     Language
	Nav      NavText
	Common   CommonText
	Calendar CalendarText
	Kanban   KanbanText
	Team     TeamText
	Priority PriorityText
}

var dictionaries = map[Language]*Dictionary{
	English: {
		Lang: English,
		Nav: NavText{
			Board:    "Kanban",
			Calendar: "Calendar",
			Events:   "Events",
			Activity: "Activity",
		},
		Common: CommonText{
			Today:    "Today",
			Overdue:  "Overdue",
			AddTask:  "Add Task",
			AddEvent: "Add Event",
			Previous: "Previous",
			Next:     "Next",
			Remote:   "Remote",
			Empty:    "Nothing scheduled",
		},
		Calendar: CalendarText{
			Months:       [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
			MonthsShort:  [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
			Weekdays:     [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
			MultiDay:     "Multi-day",
			HappeningNow: "Happening now",
			Priority:     "Priority",
		},
		Kanban: KanbanText{
			Todo:       "TODO",
			InProgress: "IN PROGRESS",
			Done:       "DONE",
			DropHere:   "Drop tasks here",
		},
		Team: TeamText{
			Title:      "Team",
			TotalTasks: "Total Tasks",
			Completed:  "Completed",
			Active:     "Active",
			Members:    "Members",
			Unassigned: "Unassigned",
		},
		Priority: PriorityText{Low: "LOW", Medium: "MEDIUM", High: "HIGH"},
	},
	Indonesian: {
		Lang: Indonesian,
		Nav: NavText{
			Board:    "Papan Kerja",
			Calendar: "Kalender",
			Events:   "Agenda",
			Activity: "Aktivitas",
		},
		Common: CommonText{
			Today:    "Hari Ini",
			Overdue:  "Terlewat",
			AddTask:  "Buat Tugas",
			AddEvent: "Buat Event",
			Previous: "Sebelumnya",
			Next:     "Berikutnya",
			Remote:   "Remote",
			Empty:    "Tidak ada jadwal",
		},
		Calendar: CalendarText{
			Months:       [12]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"},
			MonthsShort:  [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"},
			Weekdays:     [7]string{"Min", "Sen", "Sel", "Rab", "Kam", "Jum", "Sab"},
			MultiDay:     "Multi-hari",
			HappeningNow: "Sedang berlangsung",
			Priority:     "Prioritas",
		},
		Kanban: KanbanText{
			Todo:       "AKAN DIKERJAKAN",
			InProgress: "SEDANG DIPROSES",
			Done:       "SELESAI",
			DropHere:   "Geser tugas ke sini",
		},
		Team: TeamText{
			Title:      "Tim",
			TotalTasks: "Total Tugas",
			Completed:  "Selesai",
			Active:     "Aktif",
			Members:    "Anggota",
			Unassigned: "Belum ditugaskan",
		},
		Priority: PriorityText{Low: "RENDAH", Medium: "SEDANG", High: "TINGGI"},
	},
}
