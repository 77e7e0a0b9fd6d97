package inkblog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("inkblog: not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("inkblog: email already registered")
	// ErrTitleTaken is returned when a post title collides with another post.
	ErrTitleTaken = errors.New("inkblog: title already used")
)

// sqlitePragmas are applied to every pooled connection by the modernc driver.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"

// Store wraps a GORM database and provides the blog's read and write operations.
type Store struct {
	db *gorm.DB
}

// NewStore opens the database named by dsn and migrates the schema.
// postgres:// and postgresql:// URLs select Postgres; anything else is a
// SQLite file path, optionally prefixed with sqlite://.
func NewStore(dsn string) (*Store, error) {
	dialector, err := openDialector(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if db.Dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetMaxIdleConns(4)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func openDialector(dsn string) (gorm.Dialector, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn), nil
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		return nil, errors.New("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return gormsqlite.New(gormsqlite.Config{
		DriverName: "sqlite",
		DSN:        path + sep + sqlitePragmas,
	}), nil
}

// Close closes the underlying database connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ensureSchema() error {
	return s.db.AutoMigrate(&User{}, &BlogPost{}, &Comment{}, &Image{})
}

// isUniqueViolation reports whether err is a unique constraint failure from
// either backend. Postgres errors arrive translated by GORM; the modernc
// driver's errors are not known to the sqlite dialector and are checked here.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(se.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Users ---

// CreateUser inserts u and fills in its id.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(ctx context.Context, id uint) (User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}

// GetUserByEmail returns the user registered under email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}

// EmailExists reports whether a user is registered under email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// PromoteUser sets the admin level on the user registered under email.
func (s *Store) PromoteUser(ctx context.Context, email string) (User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	level := LevelAdmin
	if err := s.db.WithContext(ctx).Model(&u).Update("level", level).Error; err != nil {
		return User{}, fmt.Errorf("promote user: %w", err)
	}
	u.Level = &level
	return u, nil
}

// --- Posts ---

func (s *Store) postQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("blog_posts").
		Select("blog_posts.id, blog_posts.author_id, COALESCE(users.name, '') AS author_name, blog_posts.title, blog_posts.subtitle, blog_posts.date, blog_posts.body, blog_posts.img_url").
		Joins("LEFT JOIN users ON users.id = blog_posts.author_id")
}

// ListPosts returns every post in table order.
func (s *Store) ListPosts(ctx context.Context) ([]PostEntry, error) {
	var posts []PostEntry
	if err := s.postQuery(ctx).Order("blog_posts.id").Scan(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a single post with its author's name.
func (s *Store) GetPost(ctx context.Context, id uint) (PostEntry, error) {
	var post PostEntry
	res := s.postQuery(ctx).Where("blog_posts.id = ?", id).Limit(1).Scan(&post)
	if res.Error != nil {
		return PostEntry{}, fmt.Errorf("get post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return PostEntry{}, ErrNotFound
	}
	return post, nil
}

// CreatePost inserts p and fills in its id.
func (s *Store) CreatePost(ctx context.Context, p *BlogPost) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrTitleTaken
		}
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// UpdatePost overwrites the editable fields of post id. Author and date
// are never changed.
func (s *Store) UpdatePost(ctx context.Context, id uint, title, subtitle, imgURL, body string) error {
	res := s.db.WithContext(ctx).Model(&BlogPost{}).Where("id = ?", id).Updates(map[string]any{
		"title":    title,
		"subtitle": subtitle,
		"img_url":  imgURL,
		"body":     body,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrTitleTaken
		}
		return fmt.Errorf("update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post together with its comments in one transaction.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		res := tx.Delete(&BlogPost{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- Comments ---

// CreateComment inserts c and fills in its id.
func (s *Store) CreateComment(ctx context.Context, c *Comment) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListComments returns the comments on a post, oldest first, joined with
// their authors.
func (s *Store) ListComments(ctx context.Context, postID uint) ([]CommentEntry, error) {
	var comments []CommentEntry
	err := s.db.WithContext(ctx).
		Table("comments").
		Select("comments.id, comments.post_id, comments.author_id, COALESCE(users.name, '') AS author_name, COALESCE(users.email, '') AS author_email, comments.text").
		Joins("LEFT JOIN users ON users.id = comments.author_id").
		Where("comments.post_id = ?", postID).
		Order("comments.id").
		Scan(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// CountComments returns the number of comments attached to a post.
func (s *Store) CountComments(ctx context.Context, postID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

// --- Images ---

// SaveImage records metadata for an uploaded image.
func (s *Store) SaveImage(ctx context.Context, img *Image) error {
	if err := s.db.WithContext(ctx).Create(img).Error; err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}

// ListImages returns all images, newest first.
func (s *Store) ListImages(ctx context.Context) ([]Image, error) {
	var images []Image
	if err := s.db.WithContext(ctx).Order("uploaded_at DESC, id DESC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// ImageExists reports whether filename is already recorded.
func (s *Store) ImageExists(ctx context.Context, filename string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Image{}).Where("filename = ?", filename).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteImage removes the metadata row for filename.
func (s *Store) DeleteImage(ctx context.Context, filename string) error {
	return s.db.WithContext(ctx).Where("filename = ?", filename).Delete(&Image{}).Error
}
