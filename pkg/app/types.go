package app

// FileUpload is an image blob selected by the user.
type FileUpload struct {
	Name string
	Data []byte
}

type NewUser struct {
	Name     string
	Username string
	Email    string
	Password string
}

type NewPost struct {
	UserID   string
	Caption  string
	Tags     string // comma-separated, as typed
	Location string
	File     FileUpload
}

// PostUpdate carries the current image reference so compensation can restore
// it when a replacement upload fails.
type PostUpdate struct {
	PostID   string
	Caption  string
	Tags     string
	Location string
	ImageID  string
	ImageURL string
	File     *FileUpload // nil when the image is unchanged
}

type ProfileUpdate struct {
	UserID   string
	Name     string
	Bio      string
	ImageID  string
	ImageURL string
	File     *FileUpload // nil when the image is unchanged
}
