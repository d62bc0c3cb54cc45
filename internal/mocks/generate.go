package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/competition --output domain/competition --outpkg competitionmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/player --output domain/player --outpkg playermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/game --output domain/game --outpkg gamemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/match --output domain/match --outpkg matchmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Authenticator --dir ../domain/user --output domain/user --outpkg usermock --filename authenticator_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SessionStore --dir ../domain/user --output domain/user --outpkg usermock --filename session_store_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../platform/datastore --output platform/datastore --outpkg datastoremock --filename store_mock.go
