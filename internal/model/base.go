package model

import "github.com/google/uuid"

// asignarID fills a zero primary key before insert. Postgres would do this with
// gen_random_uuid(), but the same models also run against SQLite.
func asignarID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
