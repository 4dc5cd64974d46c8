package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/codepulse/internal/dbx"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/blogposts"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/categories"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/images"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either the pool or a
// running transaction, so services can compose writes under dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	BlogPosts(db dbx.DBTX) blogposts.Repository
	Images(db dbx.DBTX) images.Repository
}
