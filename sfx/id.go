package sfx

// Id identifies a sound effect in a Library.
type Id string
