package inkblog

// LevelAdmin is the only privilege level a user can hold besides none.
const LevelAdmin = "admin"

// OwnerID is the id of the account allowed to promote other users.
const OwnerID = 1

// User is a registered account. Level is nil for ordinary users.
type User struct {
	ID       uint    `gorm:"primaryKey"`
	Email    string  `gorm:"size:100;uniqueIndex;not null"`
	Password string  `gorm:"size:255;not null"`
	Name     string  `gorm:"size:100;not null"`
	Level    *string `gorm:"size:20"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the user holds the admin privilege level.
func (u User) IsAdmin() bool {
	return u.Level != nil && *u.Level == LevelAdmin
}

// BlogPost is a published article. Date is a display string, not a timestamp.
// Author only declares the users foreign key for migrations; it is never loaded.
type BlogPost struct {
	ID       uint   `gorm:"primaryKey"`
	AuthorID uint   `gorm:"not null;index"`
	Author   *User  `gorm:"foreignKey:AuthorID"`
	Title    string `gorm:"size:250;uniqueIndex;not null"`
	Subtitle string `gorm:"size:250;not null"`
	Date     string `gorm:"size:250;not null"`
	Body     string `gorm:"type:text;not null"`
	ImgURL   string `gorm:"size:250;not null"`
}

func (BlogPost) TableName() string { return "blog_posts" }

// Comment belongs to exactly one user and one post. Deleting the post
// deletes its comments.
type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	AuthorID uint      `gorm:"not null;index"`
	Author   *User     `gorm:"foreignKey:AuthorID"`
	PostID   uint      `gorm:"not null;index"`
	Post     *BlogPost `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Text     string    `gorm:"type:text;not null"`
}

func (Comment) TableName() string { return "comments" }

// Image is an uploaded picture stored under the uploads directory.
type Image struct {
	ID           uint   `gorm:"primaryKey"`
	Filename     string `gorm:"size:255;uniqueIndex;not null"`
	OriginalName string `gorm:"size:255;not null"`
	Width        int    `gorm:"not null"`
	Height       int    `gorm:"not null"`
	Size         int    `gorm:"not null"`
	UploadedAt   string `gorm:"size:40;not null"`
}

func (Image) TableName() string { return "images" }

// PostEntry is a post joined with its author's display name.
type PostEntry struct {
	ID         uint
	AuthorID   uint
	AuthorName string
	Title      string
	Subtitle   string
	Date       string
	Body       string
	ImgURL     string
}

// CommentEntry is a comment joined with its author.
type CommentEntry struct {
	ID          uint
	PostID      uint
	AuthorID    uint
	AuthorName  string
	AuthorEmail string
	Text        string
}
