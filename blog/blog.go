package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

type (
	// Store gives access to the users and posts of one blog,
	// backed by a single sqlite file. All queries are parameterized,
	// caller input is never interpolated into SQL text.
	Store struct {
		db *sql.DB
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}

	Post struct {
		ID       int64
		Title    string
		Time     time.Time
		Summary  string
		FullText string
		Image    string
		Author   int64
		// AuthorName is filled when the post is loaded with its author
		AuthorName string
	}

	// NewPost carries the writable fields of a post,
	// id/time/author are decided by the store.
	NewPost struct {
		Title    string
		Summary  string
		FullText string
		Image    string
	}
)

// Open opens (creating if needed) the blog database at the given path
// and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("unable to create directory %v to store the blog, cause %w", dir, err)
		}
	}
	connstr := fmt.Sprintf("file:%v?_journal=wal&_fk=on&mode=rwc", path)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %w", path, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping blog database %v, cause %w", path, err)
	}
	// a single connection keeps writes serialized, the driver queues
	// concurrent queries instead of tripping over sqlite busy errors
	conn.SetMaxOpenConns(1)
	s := &Store{db: conn}
	err = s.init(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init blog database %v, cause %w", path, err)
	}
	return s, nil
}

// CreateUser adds a new account and returns its id.
//
// Uniqueness of usernames is guaranteed by the schema, two concurrent
// calls with the same name always leave exactly one row behind, the
// loser gets a UsernameTaken error.
func (s *Store) CreateUser(ctx context.Context, username string, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `insert into users (username, password_hash, created_at) values (?, ?, ?)`,
		username, passwordHash, time.Now().UTC())
	if isUniqueViolation(err) {
		return 0, UsernameTaken{Username: username}
	} else if err != nil {
		return 0, fmt.Errorf("unable to create user %v, cause %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("unable to read id of user %v, cause %w", username, err)
	}
	return id, nil
}

// LookupUser finds one account by its exact username.
func (s *Store) LookupUser(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `select user_id, username, password_hash, created_at from users where username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{Username: username}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to lookup user %v, cause %w", username, err)
	}
	return u, nil
}

// GetUser loads one account by id.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `select user_id, username, password_hash, created_at from users where user_id = ?`, id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{ID: id}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to get user %v, cause %w", id, err)
	}
	return u, nil
}

// CreatePost stores a new post on behalf of the given author and
// returns its id. Posts are immutable once written.
func (s *Store) CreatePost(ctx context.Context, p NewPost, author int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `insert into posts (title, time, summary, full_text, image, author) values (?, ?, ?, ?, ?, ?)`,
		p.Title, time.Now().UTC(), p.Summary, p.FullText, p.Image, author)
	if err != nil {
		return 0, fmt.Errorf("unable to create post %v, cause %w", p.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("unable to read id of post %v, cause %w", p.Title, err)
	}
	return id, nil
}

// ListPosts returns every post, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `select p.post_id, p.title, p.time, p.summary, p.full_text, p.image, p.author, u.username
	from posts p
	inner join users u on p.author = u.user_id
	order by p.time desc, p.post_id desc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list posts, cause %w", err)
	}
	defer rows.Close()
	var out []Post
	for rows.Next() {
		var p Post
		err = rows.Scan(&p.ID, &p.Title, &p.Time, &p.Summary, &p.FullText, &p.Image, &p.Author, &p.AuthorName)
		if err != nil {
			return nil, fmt.Errorf("unable to scan post, cause %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to list posts, cause %w", err)
	}
	return out, nil
}

// GetPost loads one post with its author name.
func (s *Store) GetPost(ctx context.Context, id int64) (Post, error) {
	var p Post
	err := s.db.QueryRowContext(ctx, `select p.post_id, p.title, p.time, p.summary, p.full_text, p.image, p.author, u.username
	from posts p
	inner join users u on p.author = u.user_id
	where p.post_id = ?`, id).
		Scan(&p.ID, &p.Title, &p.Time, &p.Summary, &p.FullText, &p.Image, &p.Author, &p.AuthorName)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, PostNotFound{ID: id}
	} else if err != nil {
		return Post{}, fmt.Errorf("unable to get post %v, cause %w", id, err)
	}
	return p, nil
}

func (s *Store) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `create table if not exists users(
		user_id integer primary key autoincrement,
		username text not null unique,
		password_hash text not null,
		created_at timestamp not null)`)
	if err != nil {
		return fmt.Errorf("unable to create users table, cause %w", err)
	}
	_, err = s.db.ExecContext(ctx, `create table if not exists posts(
		post_id integer primary key autoincrement,
		title text not null,
		time timestamp not null,
		summary text,
		full_text text,
		image text,
		author integer not null references users(user_id))`)
	if err != nil {
		return fmt.Errorf("unable to create posts table, cause %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
