// Seed creates the café staff accounts so a fresh deployment can log in.
// Safe to run repeatedly: users are upserted by a fixed per-email UUID.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/luwak-cafe/pos-api/internal/auth"
	"github.com/luwak-cafe/pos-api/internal/config"
	"github.com/luwak-cafe/pos-api/internal/enum"
	"github.com/luwak-cafe/pos-api/internal/store/memory"
	"github.com/luwak-cafe/pos-api/internal/store/postgres"
	"golang.org/x/crypto/bcrypt"
)

type staffSeed struct {
	FullName string
	Email    string
	Role     string
}

var defaultStaff = []staffSeed{
	{"Ana Torres", "ana@luwak.pe", enum.RoleAdmin},
	{"Rosa Quispe", "rosa@luwak.pe", enum.RoleMesero},
	{"Luis Mamani", "luis@luwak.pe", enum.RoleCajero},
	{"Pedro Huamán", "pedro@luwak.pe", enum.RoleChef},
	{"Julia Ccama", "julia@luwak.pe", enum.RoleAyudante},
}

type userStore interface {
	UpsertUser(ctx context.Context, u auth.User) error
}

func main() {
	password := flag.String("password", "", "Password for every seeded account")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}

	cfg := config.Load()
	ctx := context.Background()

	var store userStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connecting to postgres: %v", err)
		}
		defer pg.Close()
		store = pg
	} else {
		mem, err := memory.New(cfg.SnapshotPath)
		if err != nil {
			log.Fatalf("opening memory store: %v", err)
		}
		if cfg.SnapshotPath == "" {
			log.Fatal("seeding the memory store requires SNAPSHOT_PATH, otherwise the users are lost on exit")
		}
		store = mem
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	for _, s := range defaultStaff {
		u := auth.User{
			// Stable ID per email keeps reseeding idempotent.
			ID:             uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+s.Email)),
			FullName:       s.FullName,
			Email:          s.Email,
			Role:           s.Role,
			HashedPassword: string(hash),
			CreatedAt:      time.Now(),
		}
		if err := store.UpsertUser(ctx, u); err != nil {
			log.Fatalf("seeding %s: %v", s.Email, err)
		}
		fmt.Printf("seeded %-10s %s\n", s.Role, s.Email)
	}

	log.Println("Seed complete")
}
