// Package registry stores the list of rooms: which floor plan to analyse,
// how many seats the room is declared to hold, and the seats extracted from
// it.
//
// Two backends implement Store:
//
//   - json: one indented JSON file, replaced atomically on every Save by
//     writing a temporary file in the same directory and renaming it
//   - sqlite: a database file using the pure-Go modernc.org/sqlite driver,
//     replaced in a single transaction on every Save
//
// A JSON registry looks like:
//
//	{
//	  "rooms": [
//	    {"id": "b2-114", "name": "Lecture Hall B", "image": "plans/b2-114.png", "capacity": 40}
//	  ]
//	}
package registry
