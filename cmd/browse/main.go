package main

import (
	"bufio"
	"context"
	"fmt"
	stdLog "log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bookwyrm/catalog/config"
	"github.com/bookwyrm/catalog/internal/fetch"
	"github.com/bookwyrm/catalog/internal/model"
	"github.com/bookwyrm/catalog/internal/repository"
	"github.com/bookwyrm/catalog/migrations"
	"github.com/bookwyrm/catalog/pkg/logger"
	"github.com/bookwyrm/catalog/pkg/postgres"
)

// browse is a terminal catalog browser: it drives the fetcher the same
// way a list view would, re-issuing the current spec on every input.
func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Fatal("load envs from .env ", zap.Error(err))
	}
	cfg := config.NewConfig(config.WithLogLevel(zapcore.WarnLevel))
	log := logger.NewLogger(cfg.Log, "browse")

	ctx := context.Background()
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	f := fetch.New(repo, log)
	defer f.Stop()

	spec := model.QuerySpec{
		SortField:     model.SortCreatedAt,
		SortDirection: model.SortDesc,
		Page:          1,
		PageSize:      9,
	}
	deleted := false
	spec.Filters.Deleted = &deleted

	f.Fetch(ctx, spec)
	render(awaitSettle(f))

	fmt.Println(`commands: sort <createdAt|title|author|rating|reviewDate> <asc|desc>, search <term>, genre <g>, page <n>, size <n>, bin, shelf, quit`)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "q":
			return
		case "sort":
			if len(fields) == 3 {
				spec.SortField = model.SortField(fields[1])
				spec.SortDirection = model.SortDirection(fields[2])
				spec.Page = 1
			}
		case "search":
			term := strings.Join(fields[1:], " ")
			if term == "" {
				spec.Filters.SearchTerm = nil
			} else {
				spec.Filters.SearchTerm = &term
			}
			spec.Page = 1
		case "genre":
			if len(fields) > 1 {
				g := strings.Join(fields[1:], " ")
				spec.Filters.Genre = &g
			} else {
				spec.Filters.Genre = nil
			}
			spec.Page = 1
		case "page":
			if len(fields) == 2 {
				if n, err := strconv.Atoi(fields[1]); err == nil && n >= 1 {
					spec.Page = n
				}
			}
		case "size":
			if len(fields) == 2 {
				if n, err := strconv.Atoi(fields[1]); err == nil && n >= 1 {
					f.SetPageSize(n)
					spec.PageSize = n
					spec.Page = 1
				}
			}
		case "bin":
			del := true
			spec.Filters.Deleted = &del
			spec.Page = 1
		case "shelf":
			del := false
			spec.Filters.Deleted = &del
			spec.Page = 1
		default:
			fmt.Println("unknown command:", fields[0])
			continue
		}

		f.SetCurrentPage(spec.Page)
		f.Fetch(ctx, spec)
		render(awaitSettle(f))
	}
}

func awaitSettle(f *fetch.Fetcher) fetch.State {
	deadline := time.Now().Add(5 * time.Second)
	for {
		st := f.State()
		if !st.Loading || time.Now().After(deadline) {
			return st
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func render(st fetch.State) {
	if st.Err != nil {
		fmt.Println("error:", st.Err)
		return
	}
	for _, b := range st.Records {
		date := "-"
		if b.ReviewDate != nil {
			date = *b.ReviewDate
		}
		fmt.Printf("%-40.40s  %-24.24s  %.1f  %s\n", b.Title, b.Author, b.Rating, date)
	}
	pages := (st.TotalCount + st.PageSize - 1) / st.PageSize
	fmt.Printf("-- %d books, page %d/%d --\n", st.TotalCount, st.CurrentPage, pages)
}
