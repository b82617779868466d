package model

// DefaultLinkExpiryHours is used whenever the settings row (settings.id
// = 1, read on every link mint) cannot be read. Falling back instead of
// erroring means a broken settings table never blocks paid users.
const DefaultLinkExpiryHours = 12
