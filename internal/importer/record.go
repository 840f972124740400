package importer

// Record is one decoded movie row. Every field is text as it appeared in
// the input; blank means absent.
type Record struct {
	Title       string
	Slug        string
	Description string
	Thumbnail   string
	Genre       string
	Languages   string
	Duration    string
	ReleaseYear string
	Cast        string
	Sizes       string
	DownloadURL string
	Screenshot  string
	Keywords    string
	CategoryID  string
}

// setters maps a canonical field name to the Record field it fills.
var setters = map[string]func(*Record, string){
	"title":       func(r *Record, v string) { r.Title = v },
	"slug":        func(r *Record, v string) { r.Slug = v },
	"description": func(r *Record, v string) { r.Description = v },
	"thumbnail":   func(r *Record, v string) { r.Thumbnail = v },
	"genre":       func(r *Record, v string) { r.Genre = v },
	"languages":   func(r *Record, v string) { r.Languages = v },
	"duration":    func(r *Record, v string) { r.Duration = v },
	"releaseYear": func(r *Record, v string) { r.ReleaseYear = v },
	"cast":        func(r *Record, v string) { r.Cast = v },
	"sizes":       func(r *Record, v string) { r.Sizes = v },
	"downloadUrl": func(r *Record, v string) { r.DownloadURL = v },
	"screenshot":  func(r *Record, v string) { r.Screenshot = v },
	"keywords":    func(r *Record, v string) { r.Keywords = v },
	"categoryId":  func(r *Record, v string) { r.CategoryID = v },
}
