package directory

// Fixed GraphQL documents. The request layer passes them through opaquely.
const (
	listBusinessesQuery = `
  query ListBusinesses {
    listBusinesses {
      businessId
      name
      category
      description
    }
  }
`

	getBusinessQuery = `
  query GetBusiness($businessId: ID!) {
    getBusiness(businessId: $businessId) {
      businessId
      name
      category
      description
    }
  }
`

	createBusinessMutation = `
  mutation CreateBusiness($input: CreateBusinessInput!) {
    createBusiness(input: $input) {
      businessId
      name
      category
      description
    }
  }
`
)
