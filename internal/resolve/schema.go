package resolve

import "github.com/graphfeed/graphfeed/internal/language"

// SDL is the full schema served by the engine. Member types are read-only
// reference data, so they have no mutations.
const SDL = `
scalar UUID

enum MemberTypeId {
  basic
  business
}

type User {
  id: UUID!
  name: String!
  balance: Float!
  profile: Profile
  posts: [Post!]!
  userSubscribedTo: [User!]!
  subscribedToUser: [User!]!
}

type Post {
  id: UUID!
  title: String!
  content: String!
  authorId: UUID!
}

type Profile {
  id: UUID!
  isMale: Boolean!
  yearOfBirth: Int!
  userId: UUID!
  memberTypeId: MemberTypeId!
  memberType: MemberType!
}

type MemberType {
  id: MemberTypeId!
  discount: Float!
  postsLimitPerMonth: Int!
}

type Query {
  users: [User!]!
  user(id: UUID!): User
  posts: [Post!]!
  post(id: UUID!): Post
  profiles: [Profile!]!
  profile(id: UUID!): Profile
  memberTypes: [MemberType!]!
  memberType(id: MemberTypeId!): MemberType
}

input CreateUserInput {
  name: String!
  balance: Float!
}

input ChangeUserInput {
  name: String
  balance: Float
}

input CreatePostInput {
  title: String!
  content: String!
  authorId: UUID!
}

input ChangePostInput {
  title: String
  content: String
}

input CreateProfileInput {
  isMale: Boolean!
  yearOfBirth: Int!
  userId: UUID!
  memberTypeId: MemberTypeId!
}

input ChangeProfileInput {
  isMale: Boolean
  yearOfBirth: Int
  memberTypeId: MemberTypeId
}

type Mutation {
  createUser(dto: CreateUserInput!): User!
  changeUser(id: UUID!, dto: ChangeUserInput!): User!
  deleteUser(id: UUID!): Boolean!
  createPost(dto: CreatePostInput!): Post!
  changePost(id: UUID!, dto: ChangePostInput!): Post!
  deletePost(id: UUID!): Boolean!
  createProfile(dto: CreateProfileInput!): Profile!
  changeProfile(id: UUID!, dto: ChangeProfileInput!): Profile!
  deleteProfile(id: UUID!): Boolean!
  subscribeTo(userId: UUID!, authorId: UUID!): User!
  unsubscribeFrom(userId: UUID!, authorId: UUID!): Boolean!
}
`

// Schema is the parsed, validated schema shared by all engines.
var Schema = language.MustLoadSchema("graphfeed", SDL)
